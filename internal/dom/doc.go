/*
Package dom provides a headless document for running page glue outside a
browser.

Markup is parsed with goquery after charset normalisation (chardet and
x/net/html/charset). Queries use CSS selectors (cascadia) or XPath
(htmlquery). The document keeps per-node listener registries and dispatches
DOMContentLoaded (once) and click events synchronously, one dispatch at a
time, the way a browser's single event loop would.

Window is the matching page.Host: it records console lines and alerts.

	doc, err := dom.Load(markup)
	if err != nil {
		return err
	}
	win := dom.NewWindow(logger)
	page.New(win).Install(doc)

	_ = doc.FireContentLoaded()
	doc.ClickSelector(page.HookSelector)
	fmt.Println(win.Alerts())
*/
package dom
