package main

import "cryptorewards-backend/cmd/rewards-cli/cmd"

func main() {
	cmd.Execute()
}
