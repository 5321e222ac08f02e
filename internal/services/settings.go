package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/nodekeeper/internal/repositories/kv"
)

// Persisted settings keys.
const (
	KeySetupStatus                 = "setupStatus"
	KeyDefaultServerStatus         = "defaultServerStatus"
	KeyInvoiceMessagePrefix        = "invoiceMessagePrefix"
	KeyInvoiceMessagePostfix       = "invoiceMessagePostfix"
	KeyInvoiceDefaultMessage       = "invoiceDefaultMessage"
	KeyAuthenticationTouchIDStatus = "authenticationTouchIDStatus"
	KeyActiveServer                = "activeServer"
	KeyNotificationUpdateInterval  = "notificationUpdateInterval"
)

// Settings is a typed view over the plain settings table. Missing values
// read as "", false or 0.
type Settings struct {
	repo kv.Repository
}

func NewSettings(repo kv.Repository) *Settings {
	return &Settings{repo: repo}
}

func (s *Settings) SetupStatus(ctx context.Context) (bool, error) {
	return s.getBool(ctx, KeySetupStatus)
}

func (s *Settings) SetSetupStatus(ctx context.Context, v bool) error {
	return s.setBool(ctx, KeySetupStatus, v)
}

func (s *Settings) DefaultServerStatus(ctx context.Context) (bool, error) {
	return s.getBool(ctx, KeyDefaultServerStatus)
}

func (s *Settings) SetDefaultServerStatus(ctx context.Context, v bool) error {
	return s.setBool(ctx, KeyDefaultServerStatus, v)
}

func (s *Settings) InvoiceMessagePrefix(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyInvoiceMessagePrefix)
}

func (s *Settings) SetInvoiceMessagePrefix(ctx context.Context, v string) error {
	return s.setString(ctx, KeyInvoiceMessagePrefix, v)
}

func (s *Settings) InvoiceMessagePostfix(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyInvoiceMessagePostfix)
}

func (s *Settings) SetInvoiceMessagePostfix(ctx context.Context, v string) error {
	return s.setString(ctx, KeyInvoiceMessagePostfix, v)
}

func (s *Settings) InvoiceDefaultMessage(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyInvoiceDefaultMessage)
}

func (s *Settings) SetInvoiceDefaultMessage(ctx context.Context, v string) error {
	return s.setString(ctx, KeyInvoiceDefaultMessage, v)
}

func (s *Settings) TouchIDStatus(ctx context.Context) (bool, error) {
	return s.getBool(ctx, KeyAuthenticationTouchIDStatus)
}

func (s *Settings) SetTouchIDStatus(ctx context.Context, v bool) error {
	return s.setBool(ctx, KeyAuthenticationTouchIDStatus, v)
}

// ActiveServer returns the address the active pointer references.
func (s *Settings) ActiveServer(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyActiveServer)
}

func (s *Settings) SetActiveServer(ctx context.Context, address string) error {
	return s.setString(ctx, KeyActiveServer, address)
}

func (s *Settings) NotificationUpdateInterval(ctx context.Context) (int, error) {
	raw, err := s.repo.Get(ctx, KeyNotificationUpdateInterval)
	if err != nil {
		return 0, err
	}
	return parseInt(KeyNotificationUpdateInterval, raw)
}

func (s *Settings) SetNotificationUpdateInterval(ctx context.Context, v int) error {
	return s.repo.Set(ctx, KeyNotificationUpdateInterval, []byte(strconv.Itoa(v)))
}

type settingKind int

const (
	kindBool settingKind = iota
	kindString
	kindInt
)

// knownSettings fixes the order Snapshot reports keys in.
var knownSettings = []struct {
	key  string
	kind settingKind
}{
	{KeySetupStatus, kindBool},
	{KeyDefaultServerStatus, kindBool},
	{KeyAuthenticationTouchIDStatus, kindBool},
	{KeyInvoiceMessagePrefix, kindString},
	{KeyInvoiceMessagePostfix, kindString},
	{KeyInvoiceDefaultMessage, kindString},
	{KeyActiveServer, kindString},
	{KeyNotificationUpdateInterval, kindInt},
}

// Snapshot reads the settings table once and returns every known key with
// its resolved value. Unknown keys in the table are skipped.
func (s *Settings) Snapshot(ctx context.Context) ([]SettingValue, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SettingValue, 0, len(knownSettings))
	for _, ks := range knownSettings {
		raw := stored[ks.key]
		var v string

		switch ks.kind {
		case kindBool:
			b, err := parseBool(ks.key, raw)
			if err != nil {
				return nil, err
			}
			v = strconv.FormatBool(b)
		case kindInt:
			n, err := parseInt(ks.key, raw)
			if err != nil {
				return nil, err
			}
			v = strconv.Itoa(n)
		default:
			v = string(raw)
		}
		out = append(out, SettingValue{Key: ks.key, Value: v})
	}
	return out, nil
}

// SettingValue is one resolved setting rendered as text.
type SettingValue struct {
	Key   string
	Value string
}

func parseBool(key string, raw []byte) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	v, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key string, raw []byte) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, nil
}

func (s *Settings) getBool(ctx context.Context, key string) (bool, error) {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return parseBool(key, raw)
}

func (s *Settings) setBool(ctx context.Context, key string, v bool) error {
	return s.repo.Set(ctx, key, []byte(strconv.FormatBool(v)))
}

func (s *Settings) getString(ctx context.Context, key string) (string, error) {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Settings) setString(ctx context.Context, key, v string) error {
	return s.repo.Set(ctx, key, []byte(v))
}
