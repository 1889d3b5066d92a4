package main

import (
	"github.com/sidkik/lessonsync/cmd"
	"github.com/sidkik/lessonsync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
