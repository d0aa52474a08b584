package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword подменяется в тестах, чтобы не обращаться к терминалу.
var readPassword = term.ReadPassword

func askPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("не удалось прочитать пароль: %w", err)
	}
	return string(pw), nil
}
