/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a dollar amount with digit grouping, e.g. $485,000.
func FormatPrice(amount float64) string {
	return printer.Sprintf("$%.0f", amount)
}
