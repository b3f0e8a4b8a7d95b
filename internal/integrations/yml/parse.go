// internal/integrations/yml/parse.go
package yml

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"golang.org/x/net/html/charset"
)

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// minimalny model oferty YML
type xmlOffer struct {
	ID          string     `xml:"id,attr"`
	AvailAttr   string     `xml:"available,attr"`
	AvailElem   string     `xml:"available"` // niektóre hurtownie dają element zamiast atrybutu
	Price       string     `xml:"price"`     // bywa "12,50" albo puste, więc string
	Name        string     `xml:"name"`
	VendorCode  string     `xml:"vendorCode"`
	Description string     `xml:"description"`
	Pictures    []string   `xml:"picture"`
	Params      []xmlParam `xml:"param"`
}

func (o xmlOffer) toOffer(skuFrom string) reconcile.SupplierOffer {
	sku := o.VendorCode
	if skuFrom == SKUFromID {
		sku = o.ID
	}
	avail := o.AvailAttr
	if strings.TrimSpace(avail) == "" {
		avail = o.AvailElem
	}

	out := reconcile.SupplierOffer{
		SKU:         strings.TrimSpace(sku),
		Name:        strings.TrimSpace(o.Name),
		Price:       f64(o.Price),
		Available:   yn(avail),
		Description: strings.TrimSpace(o.Description),
	}
	for _, p := range o.Pictures {
		if p = strings.TrimSpace(p); p != "" {
			out.Pictures = append(out.Pictures, p)
		}
	}
	for _, p := range o.Params {
		out.Params = append(out.Params, reconcile.Param{
			Name:  strings.TrimSpace(p.Name),
			Value: strings.TrimSpace(p.Value),
		})
	}
	return out
}

// ParseOffers strumieniowo dekoduje każdy <offer>; reszta dokumentu jest pomijana
func ParseOffers(r io.Reader, skuFrom string) ([]reconcile.SupplierOffer, error) {
	// Buforowany reader + dekoder z obsługą charsetów
	dec := xml.NewDecoder(bufio.NewReader(r))
	dec.CharsetReader = func(cs string, in io.Reader) (io.Reader, error) {
		return charset.NewReaderLabel(normalizeCharset(cs), in)
	}
	// feedy z hurtowni często mają encje HTML w opisach
	dec.Entity = xml.HTMLEntity

	var out []reconcile.SupplierOffer
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(se.Name.Local, "offer") {
			continue
		}
		var o xmlOffer
		if err := dec.DecodeElement(&o, &se); err != nil {
			return nil, err
		}
		out = append(out, o.toOffer(skuFrom))
	}
	return out, nil
}

// normalizeCharset mapuje nietypowe etykiety na standardowe nazwy rozpoznawane przez charset.NewReaderLabel
func normalizeCharset(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "latin ii", "latin-2", "latin2", "iso8859-2", "iso_8859-2":
		return "iso-8859-2"
	case "cp1250", "windows1250", "win-1250":
		return "windows-1250"
	case "cp1251", "windows1251", "win-1251":
		return "windows-1251"
	default:
		return c
	}
}

func yn(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "1", "yes", "y", "t", "tak":
		return true
	default:
		return false
	}
}

func f64(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// zamień ewentualny przecinek na kropkę, wytnij spacje tysięcy
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
