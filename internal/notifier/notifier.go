// Package notifier delivers desktop notifications through the companion
// tray application. The tray advertises itself with a lockfile holding
// "port|pid|secret" and accepts authenticated webhook posts on localhost.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

var (
	ErrTrayNotRunning    = errors.New(constants.TrayExecutablePrefix + " is not running")
	ErrMalformedLockfile = errors.New("tray lockfile is malformed")
)

const secretHeader = "X-Snaprise-Secret"

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Tray posts notifications to the running tray application.
type Tray struct {
	client *http.Client
}

func New() *Tray {
	return &Tray{client: &http.Client{Timeout: 5 * time.Second}}
}

func (n *Tray) Notify(ctx context.Context, text string) error {
	dir, err := TrayConfigDir()
	if err != nil {
		return err
	}

	lf, err := readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	if err := lf.validateProcess(); err != nil {
		return err
	}

	return n.send(ctx, lf, WebhookPayload{
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	})
}

// AlarmMessage is the notification text for a firing alarm.
func AlarmMessage(a models.Alarm) string {
	return fmt.Sprintf("⏰ %s (%s) - complete the %s challenge to dismiss", a.DisplayName(), a.Time, a.Challenge)
}

// TrayConfigDir returns the directory holding the tray lockfile. The tray's
// settings.json may point it somewhere else via settings.lockfile_dir.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil && store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
		return *store.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

type lockfile struct {
	Port   int
	PID    int
	Secret string
}

func readLockfile(path string) (lockfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return lockfile{}, ErrTrayNotRunning
	}
	return parseLockfile(string(content))
}

func parseLockfile(content string) (lockfile, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return lockfile{}, ErrMalformedLockfile
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return lockfile{}, fmt.Errorf("%w: invalid port %q", ErrMalformedLockfile, parts[0])
	}
	if port < 1 || port > 65535 {
		return lockfile{}, fmt.Errorf("%w: port %d is outside valid range (1-65535)", ErrMalformedLockfile, port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return lockfile{}, fmt.Errorf("%w: invalid process ID %q", ErrMalformedLockfile, parts[1])
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return lockfile{}, fmt.Errorf("%w: secret is empty", ErrMalformedLockfile)
	}
	return lockfile{Port: port, PID: pid, Secret: secret}, nil
}

// validateProcess makes sure the lockfile's PID still belongs to the tray
// and not to a process that reused it.
func (lf lockfile) validateProcess() error {
	process, err := findProcessFunc(lf.PID)
	if err != nil || process == nil {
		return ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", lf.PID, constants.TrayExecutablePrefix, process.Executable())
	}
	return nil
}

func (n *Tray) send(ctx context.Context, lf lockfile, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d", lf.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, lf.Secret)

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach tray: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
