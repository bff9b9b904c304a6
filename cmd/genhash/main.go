// Command genhash prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("password", "", "password to hash")
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "uso: genhash -password <clave> [-cost 12]")
		os.Exit(2)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(h))
}
