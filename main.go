package main

import (
	"os"

	"find-papers/app"
)

func main() {
	os.Exit(app.Run())
}
