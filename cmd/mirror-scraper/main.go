package main

import "mirror-scraper/cmd/mirror-scraper/cmd"

func main() {
	cmd.Execute()
}
