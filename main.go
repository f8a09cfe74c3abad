package main

import (
	"github.com/tsinghua-fib-lab/logreplay-sim/cmd"
)

func main() {
	cmd.Execute()
}
