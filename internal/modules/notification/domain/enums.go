//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// DeliveryMethod is the relay call used for a notification
// ENUM(album,photo,text)
type DeliveryMethod string
