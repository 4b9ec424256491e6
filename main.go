package main

import (
	"fmt"

	"github.com/zeu5/crm-rl/cmd"
)

// main entry point to every demo scenario
func main() {
	rootCommand := cmd.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
