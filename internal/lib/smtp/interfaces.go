// Package smtp оборачивает net/smtp для отправки писем через STARTTLS.
package smtp

import "io"

// Client покрывает часть *smtp.Client, нужную для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface устанавливает соединения и знает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	Sender() string
}
