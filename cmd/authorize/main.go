// Command authorize runs the one-time OAuth consent flow and prints the
// refresh token to put in GMAIL_REFRESH_TOKEN.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"mutasiku/internal/gmail"
	"mutasiku/internal/logger"
)

func main() {
	credentials := flag.String("credentials", "credentials.json", "OAuth client secret file")
	flag.Parse()

	log := logger.New("authorize")

	cfg, err := gmail.LoadCredentials(*credentials)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load credentials")
	}

	fmt.Println("Open this URL in a browser and approve access:")
	fmt.Println()
	fmt.Println("  " + gmail.AuthURL(cfg))
	fmt.Println()
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read authorization code")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		log.Fatal().Msg("Empty authorization code")
	}

	token, err := gmail.Exchange(context.Background(), cfg, code)
	if err != nil {
		log.Fatal().Err(err).Msg("Code exchange failed")
	}
	if token.RefreshToken == "" {
		log.Fatal().Msg("No refresh token returned; revoke the app's access and try again")
	}

	fmt.Println()
	fmt.Println("Add this to your environment or .env file:")
	fmt.Println()
	fmt.Printf("  GMAIL_REFRESH_TOKEN=%s\n", token.RefreshToken)
}
