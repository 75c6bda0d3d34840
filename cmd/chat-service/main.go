package main

import (
	"os"

	"github.com/aurora-chat/aurora/chatservice"
)

func main() {
	if err := chatservice.Run(); err != nil {
		os.Exit(1)
	}
}
