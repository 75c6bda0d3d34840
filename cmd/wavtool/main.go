package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/aurora-chat/aurora/wavtool"
)

func main() {
	var (
		query       string
		weaviateURL string
		ollamaURL   string
		embedModel  string
		userID      string
		topK        int
	)

	flag.StringVar(&query, "q", "", "Query text (required)")
	flag.StringVar(&query, "query", "", "Query text (required, long form)")
	flag.StringVar(&weaviateURL, "weaviate-url", "localhost:8080", "Weaviate host")
	flag.StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama base URL")
	flag.StringVar(&embedModel, "embed-model", "mxbai-embed-large", "Embedding model name")
	flag.StringVar(&userID, "user", "", "Scope results to this userId (required)")
	flag.IntVar(&topK, "k", 3, "Top K results")
	flag.Parse()

	if query == "" || userID == "" {
		fmt.Println("-q query and --user are required")
		os.Exit(1)
	}

	out, err := wavtool.Query(weaviateURL, ollamaURL, embedModel, userID, query, topK)
	if err != nil {
		log.Fatal().Err(err).Msg("memory index query failed")
	}
	fmt.Println(string(out))
}
