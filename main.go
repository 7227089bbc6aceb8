package main

import "github.com/klytics/sheetlens/cmd"

func main() {
	cmd.Execute()
}
