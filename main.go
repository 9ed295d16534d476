package main

import "andino-loader/cmd"

func main() {
	cmd.Execute()
}
