package main

import "shul-backend/cmd"

func main() {
	cmd.Execute()
}
