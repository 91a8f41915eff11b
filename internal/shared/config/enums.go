//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string

// AuthMethod selects the interactive login flow used when no stored session works
// ENUM(qr,phone)
type AuthMethod string

// NotifyMode selects the identity that delivers notifications
// ENUM(bot,user)
type NotifyMode string
