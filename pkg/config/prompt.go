package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const setupGuide = `
=== Telegram Setup Guide ===
1. Create a bot: Talk to @BotFather on Telegram and use /newbot
2. Copy the API token it gives you.
3. To get your chat ID:
   - Start a chat with your bot
   - Visit: https://api.telegram.org/bot<YourToken>/getUpdates after sending a message
   - Copy the chat.id from the response

`

type prompter struct {
	r   *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(q string) (string, error) {
	fmt.Fprint(p.out, q)
	line, err := p.r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Prompt collects a fresh configuration interactively.
func Prompt(in io.Reader, out io.Writer) (*Config, error) {
	p := &prompter{r: bufio.NewReader(in), out: out}
	fmt.Fprint(out, setupGuide)

	cfg := &Config{}
	var err error
	if cfg.TelegramToken, err = p.ask("Enter Telegram Bot API Token: "); err != nil {
		return nil, err
	}
	if cfg.ChatID, err = p.ask("Enter Telegram Chat ID: "); err != nil {
		return nil, err
	}
	delay, err := p.ask("Enter delay in seconds (e.g., 1800 for 30 mins): ")
	if err != nil {
		return nil, err
	}
	if cfg.DelaySeconds, err = strconv.Atoi(delay); err != nil {
		return nil, fmt.Errorf("delay %q is not an integer: %w", delay, err)
	}
	ids, err := p.ask("Enter Peer IDs (comma-separated): ")
	if err != nil {
		return nil, err
	}
	cfg.PeerIDs = SplitList(ids)
	if cfg.ScreenName, err = p.ask("Enter your screen session name (e.g., gensyn): "); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AskReuse asks whether an existing config file should be used as is.
// Closed input counts as reuse.
func AskReuse(in io.Reader, out io.Writer) (bool, error) {
	p := &prompter{r: bufio.NewReader(in), out: out}
	fmt.Fprintln(out, "\nConfig file found.")
	fmt.Fprintln(out, "1 - Use existing config")
	fmt.Fprintln(out, "2 - Create new config")
	choice, err := p.ask("Select option: ")
	if errors.Is(err, io.EOF) {
		// no terminal attached, e.g. started by a supervisor
		fmt.Fprintln(out)
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return choice != "2", nil
}

// SplitList splits a comma-separated answer, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
