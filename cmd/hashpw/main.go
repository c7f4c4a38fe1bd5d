// Command hashpw prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	hashpw 's3cret'
//	echo 's3cret' | hashpw
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	logrus "github.com/sirupsen/logrus"

	"taxi_ledger/internal/controllers"
)

var errEmptyPassword = errors.New("password must not be empty")

func run(args []string, in io.Reader, out io.Writer) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errEmptyPassword
	}

	hash, err := controllers.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		logrus.WithError(err).Fatal("Could not hash password.")
	}
}
