// Package printing renders order invoices. HTML comes from an embedded
// html/template; PDF output prints that HTML through headless Chrome using
// the DevTools protocol.
//
//	pdf, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{RemoteURL: cfg.ChromeRemoteURL})
//	invoices, err := printing.NewInvoiceRenderer(printing.WithPDFRenderer(pdf))
//	html, err := invoices.RenderHTML(ctx, doc)
package printing
