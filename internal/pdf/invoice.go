package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateInvoice(data InvoiceData) (string, error)
}

type InvoiceItem struct {
	Name     string
	Size     string
	Quantity int
	Price    float64
}

type InvoiceData struct {
	OrderCode    string
	CustomerName string
	Phone        string
	City         string
	Area         string
	Address      string
	Items        []InvoiceItem
	Subtotal     float64
	CreatedAt    time.Time
	Filename     string // имя файла (без путей); если пусто — сгенерируем
}

// InvoiceGenerator — реализация
type InvoiceGenerator struct {
	RootDir  string // корень хранения, например "./files"
	fontName string
}

func NewInvoiceGenerator(rootDir string) *InvoiceGenerator {
	return &InvoiceGenerator{
		RootDir:  filepath.Clean(rootDir),
		fontName: "Helvetica",
	}
}

func (g *InvoiceGenerator) GenerateInvoice(data InvoiceData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("invoice_%s.pdf", data.OrderCode)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", data.OrderCode), false)
	pdf.SetAuthor("AURALEEN", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "CASH ON DELIVERY INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Order %s  -  %s", data.OrderCode, data.CreatedAt.Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	// ===== Доставка
	g.sectionTitle(pdf, "Delivery")
	g.kvLine(pdf, "Customer", data.CustomerName)
	g.kvLine(pdf, "Phone", data.Phone)
	g.kvLine(pdf, "City", data.City)
	g.kvLine(pdf, "Area", data.Area)
	g.kvLine(pdf, "Address", data.Address)
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Позиции
	g.sectionTitle(pdf, "Items")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(80, 7, "Fabric", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Size", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Price", "B", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	for _, item := range data.Items {
		pdf.CellFormat(80, 7, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, item.Size, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%.2f", item.Price), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Итог
	g.sectionTitle(pdf, "Total")
	g.kvLine(pdf, "Payable on delivery", fmt.Sprintf("%.2f", data.Subtotal))
	pdf.Ln(1)

	pdf.SetFont(g.fontName, "", 11)
	note := "Payment is collected in cash at the point of delivery. " +
		"Our team will contact you to confirm the order before dispatch."
	pdf.MultiCell(0, 6, note, "", "L", false)

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *InvoiceGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // безопасность
	return filepath.Join(g.RootDir, filename), nil
}

func (g *InvoiceGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *InvoiceGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *InvoiceGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
