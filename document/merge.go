package document

// Merge combines overriding with base and returns a new document.
//
//   - A Null or Scalar overriding value wins unless it is Null, in which case base is returned.
//   - Two Sequences are concatenated (overriding first) with exact duplicates removed,
//     keeping the first occurrence.
//   - A Sequence facing anything other than a Sequence wins.
//   - A Mapping is merged key by key into base: for every key of overriding the
//     value is Merge(overriding[k], base[k] ?? overriding[k]); keys only present in
//     base are kept. A non-Mapping base contributes no keys.
//
// The fallback to overriding[k] for keys missing from base makes that key a
// self-merge. For scalars and mappings this is the identity; a sequence merged
// with itself loses its duplicate elements.
func Merge(overriding, base Document) Document {
	switch overriding.kind {
	case KindNull, KindScalar:
		return coalesce(overriding, base)
	case KindSequence:
		if base.kind == KindSequence {
			return Document{kind: KindSequence, seq: unique(overriding.seq, base.seq)}
		}
		return coalesce(overriding, base)
	case KindMapping:
		return mergeMapping(overriding.m, base)
	}
	return base
}

func coalesce(overriding, base Document) Document {
	if overriding.kind == KindNull {
		return base
	}
	return overriding
}

func mergeMapping(overriding Map, base Document) Document {
	b := &Builder{}
	if base.kind == KindMapping {
		b = NewBuilder(base.m)
	}

	overriding.Range(func(key string, value Document) bool {
		other, ok := base.Get(key)
		if !ok || other.kind == KindNull {
			other = value
		}
		b.Set(key, Merge(value, other))
		return true
	})

	return Mapping(b.Map())
}

// unique concatenates lists and drops exact duplicates, first occurrence wins
func unique(lists ...[]Document) []Document {
	var out []Document
	for _, list := range lists {
	next:
		for _, item := range list {
			for _, seen := range out {
				if Equal(seen, item) {
					continue next
				}
			}
			out = append(out, item)
		}
	}
	if out == nil {
		out = []Document{}
	}
	return out
}
