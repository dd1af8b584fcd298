package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  Psyduck environment check")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	goVersion := runtime.Version()
	fmt.Printf("✅ Go version: %s\n", goVersion)
	fmt.Printf("✅ OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// Browser binary: rod looks in the usual install paths, falls back to
	// its own managed download directory.
	if bin, ok := launcher.LookPath(); ok {
		fmt.Printf("✅ Browser found: %s\n", bin)
	} else {
		fmt.Println("⚠️  No Chrome/Chromium found - rod will download one on first run")
	}

	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		fmt.Println("✅ OPENAI_API_KEY is set")
	} else if _, err := os.Stat(".env"); err == nil {
		fmt.Println("✅ .env file present (OPENAI_API_KEY not exported)")
	} else {
		fmt.Println("❌ OPENAI_API_KEY not set and no .env file - vision extraction will not work")
		allOK = false
	}

	fmt.Println()
	fmt.Println("Checking Go module...")
	if _, err := os.Stat("go.mod"); err == nil {
		fmt.Println("✅ go.mod present")

		fmt.Println("Downloading dependencies...")
		cmd := exec.Command("go", "mod", "download")
		if err := cmd.Run(); err != nil {
			fmt.Printf("❌ go mod download failed: %v\n", err)
			allOK = false
		} else {
			fmt.Println("✅ Dependencies downloaded")
		}
	} else {
		fmt.Println("❌ go.mod missing - run from the repository root")
		allOK = false
	}

	fmt.Println()
	fmt.Println("Checking project layout...")
	requiredDirs := []string{
		"cmd/psyduck",
		"internal/interpret",
		"internal/platforms",
		"internal/scrape",
		"internal/vision",
		"internal/export",
		"internal/plugin",
		"pkg/openai",
	}

	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ missing\n", dir)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ Environment looks good.")
		fmt.Println()
		fmt.Println("Next:")
		fmt.Println("  1. go build ./cmd/psyduck")
		fmt.Println("  2. ./psyduck deepscrape \"<your instruction>\"")
		os.Exit(0)
	}
	fmt.Println("❌ Environment check failed, fix the issues above.")
	os.Exit(1)
}
