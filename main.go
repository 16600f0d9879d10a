package main

import (
	"github.com/talkincode/qsadmin/cmd"
)

func main() {
	cmd.Execute()
}
