package main

import (
	"os"

	flags "github.com/jessevdk/go-flags"
)

// Options holds the server configuration. Everything can come from the
// environment so the container setup stays flag-free.
type Options struct {
	Port        string `long:"port" env:"PORT" default:"8080" description:"port to listen on"`
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"postgres connection string"`
	JWTSecret   string `long:"jwt-secret" env:"JWT_SECRET" default:"dev-secret-change-me" description:"HMAC secret for session tokens"`
	Env         string `long:"env" env:"NAT_ENV" default:"development" description:"deployment environment"`
	BaseURL     string `long:"base-url" env:"BASE_URL" default:"http://localhost:8080" description:"public base URL, used for join links and QR codes"`
}

var opts Options

func parseOptions() error {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return err
	}
	return nil
}

func isDev() bool {
	return opts.Env != "production"
}
