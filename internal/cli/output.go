package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"physiobill/internal/render"
	"physiobill/pkg/domain"
)

func printTable(cmd *cobra.Command, headers []string, rows [][]string, right ...int) error {
	out := cmd.OutOrStdout()
	_, err := fmt.Fprintln(out, render.New(out).Table(headers, rows, right...))
	return err
}

func patientRows(patients []domain.Patient) [][]string {
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		age := ""
		if p.Age > 0 {
			age = strconv.Itoa(p.Age)
		}
		rows = append(rows, []string{p.ID, p.Name, p.Phone, age, p.Sex})
	}
	return rows
}

func serviceRows(services []domain.Service) [][]string {
	rows := make([][]string, 0, len(services))
	for _, s := range services {
		rows = append(rows, []string{s.ID, s.Name, render.Money(s.Price), s.Description})
	}
	return rows
}

func parseDecimal(flag, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: %w", flag, raw, err)
	}
	return d, nil
}

func parsePercent(flag, raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(flag, raw)
	if err != nil {
		return d, err
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Decimal{}, fmt.Errorf("--%s must be between 0 and 100", flag)
	}
	return d, nil
}
