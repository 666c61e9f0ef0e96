package iocli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio реализация IO поверх стандартных потоков процесса.
// Секреты pairing читаются без эха; если stdin перенаправлен
// (не терминал), ввод читается как обычная строка.
type Stdio struct {
	reader *bufio.Reader
}

// NewStdio создает терминальный IO
func NewStdio() IO {
	return &Stdio{reader: bufio.NewReader(os.Stdin)}
}

func (s *Stdio) Println(a ...any) {
	fmt.Println(a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

// ReadInput выводит приглашение и читает строку до перевода строки
func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword читает секрет, не показывая его в терминале
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// stdin перенаправлен, скрывать эхо нечего
		return s.ReadInput("")
	}

	pwBytes, err := term.ReadPassword(fd)
	s.Println("")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pwBytes), nil
}
