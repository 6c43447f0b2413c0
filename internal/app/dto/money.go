package dto

import "stayhub/internal/domain/shared/money"

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

// Page wraps one page of a collection with the collection size.
type Page[T any] struct {
	Total  int `json:"total"`
	Result []T `json:"result"`
}
