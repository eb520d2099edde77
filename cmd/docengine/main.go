// Package main 启动应用程序
package main

import "github.com/foliva/docengine/pkg/cmd"

//	@title			Folivafy Document Engine API
//	@version		1.0
//	@description	文档与事件引擎：集合、带两阶段删除的文档、授权和基于角色的访问控制。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
