package main

import "s3-utils/cmd"

func main() {
	cmd.Execute()
}
