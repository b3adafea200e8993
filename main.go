package main

import (
	"github.com/wot-oss/fwreg/cmd"
)

func main() {
	cmd.Execute()
}
