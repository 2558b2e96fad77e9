package main

import "github.com/cardfeed/backend/internal/cli/cmd"

func main() {
	cmd.Execute()
}
