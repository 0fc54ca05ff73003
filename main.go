// file: main.go
package main

import (
	"os"

	"github.com/assessment-hisan/auction-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
