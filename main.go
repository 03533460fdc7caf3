package main

import "github.com/user/mediacms-timeline/cmd"

func main() {
	cmd.Execute()
}
