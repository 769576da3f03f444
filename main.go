package main

import "github.com/liuqy/experiment-management/cmd"

func main() {
	cmd.Execute()
}
