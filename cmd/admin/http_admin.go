package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"realcoins/internal/transport/admin"
)

func balanceCmd(args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8081", "admin base url")
	player := fs.String("player", "", "player uuid (required)")
	token := fs.String("token", os.Getenv("REALCOINS_ADMIN_TOKEN"), "bearer token")
	_ = fs.Parse(args)

	if strings.TrimSpace(*player) == "" {
		fmt.Fprintln(os.Stderr, "missing -player")
		os.Exit(2)
	}
	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/balance/" + strings.TrimSpace(*player)
	req, _ := http.NewRequest(http.MethodGet, u, nil)
	do(req, *token, 5*time.Second)
}

func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8081", "admin base url")
	token := fs.String("token", os.Getenv("REALCOINS_ADMIN_TOKEN"), "bearer token")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/admin/v1/snapshot"
	req, _ := http.NewRequest(http.MethodPost, u, nil)
	do(req, *token, 10*time.Second)
}

// tokenCmd signs an admin token with the server's secret.
func tokenCmd(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	secret := fs.String("secret", os.Getenv("REALCOINS_ADMIN_SECRET"), "HS256 secret")
	subject := fs.String("sub", "ops", "token subject")
	ttl := fs.Duration("ttl", 12*time.Hour, "token lifetime")
	_ = fs.Parse(args)

	tok, err := admin.SignToken([]byte(*secret), *subject, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign:", err)
		os.Exit(2)
	}
	fmt.Println(tok)
}

func do(req *http.Request, token string, timeout time.Duration) {
	if t := strings.TrimSpace(token); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	cl := &http.Client{Timeout: timeout}
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
