package registration

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "02/01/2006 15:04:05"

var csvHeader = []string{
	"ID", "Nome", "Email", "Telefone", "Endereço", "Cidade",
	"Estado", "CEP", "Código PIX", "Pago", "Data Criação", "Valor Pedido", "Método Pagamento",
}

// renderCSV produces the row-based export: a header row followed by one row
// per record, in insertion order.
func renderCSV(records []StoredRecord) (string, error) {
	buf := strings.Builder{}
	writer := csv.NewWriter(&buf)

	err := writer.Write(csvHeader)
	if err != nil {
		return "", fmt.Errorf("error writing csv header: %s", err)
	}

	for _, r := range records {
		err = writer.Write([]string{
			r.UID,
			r.Name,
			r.Email,
			r.Phone,
			r.Address.Street,
			r.Address.City,
			r.Address.State,
			r.Address.PostalCode,
			r.PixCode,
			r.PaidLabel(),
			r.CreatedAt.Format(timestampLayout),
			r.OrderValue(),
			string(r.PaymentMethod),
		})
		if err != nil {
			return "", fmt.Errorf("error writing csv row for %s: %s", r.UID, err)
		}
	}

	writer.Flush()
	return buf.String(), writer.Error()
}

// renderRecordText produces the single-record export written on every save.
func renderRecordText(r StoredRecord) string {
	buf := strings.Builder{}

	buf.WriteString("=== NOVO CADASTRO ===\n")
	fmt.Fprintf(&buf, "Data/Hora: %s\n", r.CreatedAt.Format(timestampLayout))
	fmt.Fprintf(&buf, "ID: %s\n", r.UID)
	fmt.Fprintf(&buf, "Nome: %s\n", r.Name)
	fmt.Fprintf(&buf, "Email: %s\n", r.Email)
	fmt.Fprintf(&buf, "Telefone: %s\n", r.Phone)
	fmt.Fprintf(&buf, "Endereço: %s\n", r.Address.Street)
	fmt.Fprintf(&buf, "Cidade: %s\n", r.Address.City)
	fmt.Fprintf(&buf, "Estado: %s\n", r.Address.State)
	fmt.Fprintf(&buf, "CEP: %s\n", r.Address.PostalCode)
	fmt.Fprintf(&buf, "Valor do Pedido: %s\n", r.OrderValue())
	fmt.Fprintf(&buf, "Código PIX: %s\n", orDefault(r.PixCode, "Não gerado"))
	fmt.Fprintf(&buf, "Status Pagamento: %s\n", paymentStatusLabel(r.IsPaid))
	fmt.Fprintf(&buf, "Método Pagamento: %s\n", orDefault(string(r.PaymentMethod), "Não definido"))
	buf.WriteString("========================\n")

	return buf.String()
}

// renderTextReport produces the narrative export: a stats header followed by
// a numbered section per record.
func renderTextReport(records []StoredRecord, stats Stats, now time.Time) string {
	buf := strings.Builder{}

	buf.WriteString("RELATÓRIO COMPLETO - LOJA VIRTUAL\n")
	fmt.Fprintf(&buf, "Gerado em: %s\n\n", now.Format(timestampLayout))

	buf.WriteString("=== ESTATÍSTICAS ===\n")
	fmt.Fprintf(&buf, "Total de Cadastros: %d\n", stats.TotalRecords)
	fmt.Fprintf(&buf, "Pagamentos Realizados: %d\n", stats.PaidRecords)
	fmt.Fprintf(&buf, "Pagamentos Pendentes: %d\n", stats.UnpaidRecords)
	fmt.Fprintf(&buf, "Taxa de Conversão: %.2f%%\n", stats.ConversionRate)
	fmt.Fprintf(&buf, "Receita Total: %s\n\n", stats.TotalRevenue())

	buf.WriteString("=== CADASTROS ===\n\n")

	for i, r := range records {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, r.Name)
		fmt.Fprintf(&buf, "   ID: %s\n", r.UID)
		fmt.Fprintf(&buf, "   Email: %s\n", r.Email)
		fmt.Fprintf(&buf, "   Telefone: %s\n", r.Phone)
		fmt.Fprintf(&buf, "   Endereço: %s\n", r.Address.Summary())
		fmt.Fprintf(&buf, "   Valor: %s\n", r.OrderValue())
		fmt.Fprintf(&buf, "   PIX: %s\n", orDefault(r.PixCode, "Não gerado"))
		fmt.Fprintf(&buf, "   Status: %s\n", paymentStatusLabel(r.IsPaid))
		fmt.Fprintf(&buf, "   Data: %s\n\n", r.CreatedAt.Format(timestampLayout))
	}

	return buf.String()
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func paymentStatusLabel(isPaid bool) string {
	if isPaid {
		return "PAGO"
	}
	return "PENDENTE"
}
