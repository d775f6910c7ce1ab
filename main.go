package main

import "github.com/RubachokBoss/submission-report/cmd"

func main() {
	cmd.Execute()
}
