package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PaymentType enumerates the accepted payment methods
type PaymentType string

const (
	PaymentTypeCard   PaymentType = "CARD"
	PaymentTypePix    PaymentType = "PIX"
	PaymentTypeBoleto PaymentType = "BOLETO"
)

var (
	cardNumberRegex = regexp.MustCompile(`^\d{13,19}$`)
	expiryRegex     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{4}$`)
	cvvRegex        = regexp.MustCompile(`^\d{3,4}$`)
)

// Payment is the payment descriptor value object. For card payments
// only the last four digits of the number are retained; the security
// code is validated and discarded.
type Payment struct {
	Type           PaymentType
	CardLastDigits string
	CardHolder     string
	CardExpiry     string // MM/YYYY
}

// NewCardPayment creates a card payment descriptor. Expiry must be the
// current month or later.
func NewCardPayment(number, holder, expiry, securityCode string) (Payment, error) {
	if !cardNumberRegex.MatchString(number) {
		return Payment{}, ErrCardNumberInvalid
	}
	if strings.TrimSpace(holder) == "" {
		return Payment{}, ErrCardHolderRequired
	}
	if !cvvRegex.MatchString(securityCode) {
		return Payment{}, ErrCardSecurityCodeInvalid
	}
	if err := validateExpiry(expiry); err != nil {
		return Payment{}, err
	}

	return Payment{
		Type:           PaymentTypeCard,
		CardLastDigits: number[len(number)-4:],
		CardHolder:     strings.TrimSpace(holder),
		CardExpiry:     expiry,
	}, nil
}

// NewPixPayment creates a PIX payment descriptor.
func NewPixPayment() Payment {
	return Payment{Type: PaymentTypePix}
}

// NewBoletoPayment creates a boleto payment descriptor.
func NewBoletoPayment() Payment {
	return Payment{Type: PaymentTypeBoleto}
}

func validateExpiry(expiry string) error {
	if !expiryRegex.MatchString(expiry) {
		return ErrCardExpiryInvalid
	}

	parts := strings.SplitN(expiry, "/", 2)
	month, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[1])

	now := time.Now()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return ErrCardExpired
	}
	return nil
}
