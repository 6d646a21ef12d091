// hieractl 在命令行上查询分层 YAML 配置
//
//	hieractl lookup db.host -s environment=production -m hash
//	hieractl sources -s node=web01
//	hieractl watch db.host
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	app.WithVersion(version)

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
