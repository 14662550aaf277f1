// ABOUTME: Ordered extraction strategies for product price, title, image, and description
// ABOUTME: Each strategy is a pure function over a parsed document; the first hit wins
package fetcher

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts one field from a document
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document) (string, bool)
}

// PriceStrategies are tried in order until one yields a parseable price
var PriceStrategies = []Strategy{
	{Name: "json-ld", Extract: jsonLDPrice},
	{Name: "meta-product-price", Extract: metaContent(`meta[property="product:price:amount"]`, `meta[property="og:price:amount"]`)},
	{Name: "meta-itemprop", Extract: metaContent(`meta[itemprop="price"]`)},
	{Name: "itemprop", Extract: itempropPrice},
	{Name: "amazon", Extract: amazonPrice},
	{Name: "class", Extract: selectorText("span.price", ".product-price", ".price")},
	{Name: "regex", Extract: regexPrice},
}

// TitleStrategies are tried in order for the product name
var TitleStrategies = []Strategy{
	{Name: "og", Extract: metaContent(`meta[property="og:title"]`)},
	{Name: "h1", Extract: selectorText("h1")},
	{Name: "itemprop", Extract: selectorText(`[itemprop="name"]`)},
	{Name: "title", Extract: selectorText("title")},
}

// ImageStrategies are tried in order for the main product image
var ImageStrategies = []Strategy{
	{Name: "og", Extract: metaContent(`meta[property="og:image"]`)},
	{Name: "itemprop", Extract: selectorAttr("src", `img[itemprop="image"]`)},
	{Name: "class", Extract: selectorAttr("src", "img.product-image")},
	{Name: "first-img", Extract: selectorAttr("src", "img")},
}

// DescriptionStrategies are tried in order for a short description
var DescriptionStrategies = []Strategy{
	{Name: "og", Extract: metaContent(`meta[property="og:description"]`)},
	{Name: "meta", Extract: metaContent(`meta[name="description"]`)},
	{Name: "itemprop", Extract: selectorText(`[itemprop="description"]`)},
}

// runStrategies returns the first non-empty value and the strategy name
func runStrategies(doc *goquery.Document, strategies []Strategy) (string, string) {
	for _, s := range strategies {
		if v, ok := s.Extract(doc); ok {
			v = strings.TrimSpace(v)
			if v != "" {
				return v, s.Name
			}
		}
	}
	return "", ""
}

// extractPrice runs the price strategies, skipping hits that do not parse
func extractPrice(doc *goquery.Document) (float64, string, bool) {
	for _, s := range PriceStrategies {
		raw, ok := s.Extract(doc)
		if !ok {
			continue
		}
		if price, ok := ParsePrice(raw); ok {
			return price, s.Name, true
		}
	}
	return 0, "", false
}

func metaContent(selectors ...string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		for _, sel := range selectors {
			if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
		return "", false
	}
}

func selectorText(selectors ...string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		for _, sel := range selectors {
			if v := strings.TrimSpace(doc.Find(sel).First().Text()); v != "" {
				return collapseSpace(v), true
			}
		}
		return "", false
	}
}

func selectorAttr(attr string, selectors ...string) func(*goquery.Document) (string, bool) {
	return func(doc *goquery.Document) (string, bool) {
		for _, sel := range selectors {
			if v, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
		return "", false
	}
}

// itempropPrice prefers the content attribute over visible text
func itempropPrice(doc *goquery.Document) (string, bool) {
	sel := doc.Find(`[itemprop="price"]`).First()
	if sel.Length() == 0 {
		return "", false
	}
	if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	return sel.Text(), true
}

// amazonPrice joins the whole and fraction spans Amazon renders separately
func amazonPrice(doc *goquery.Document) (string, bool) {
	price := doc.Find("span.a-price").First()
	whole := strings.TrimSpace(price.Find("span.a-price-whole").First().Text())
	if whole == "" {
		whole = strings.TrimSpace(doc.Find("span.a-price-whole").First().Text())
	}
	if whole == "" {
		return "", false
	}
	whole = strings.TrimRight(whole, ".,")
	fraction := strings.TrimSpace(price.Find("span.a-price-fraction").First().Text())
	if fraction == "" {
		return whole, true
	}
	return whole + "." + fraction, true
}

var currencyPrice = regexp.MustCompile(`[$€£¥]\s?(\d[\d,.]*)`)

// regexPrice scans visible body text for the first currency-prefixed amount
func regexPrice(doc *goquery.Document) (string, bool) {
	m := currencyPrice.FindStringSubmatch(doc.Find("body").Text())
	if m == nil {
		return "", false
	}
	return m[1], true
}

// jsonLDPrice reads offers.price from schema.org Product blocks
func jsonLDPrice(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload interface{}
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if v, ok := findOfferPrice(payload); ok {
			found = v
			return false
		}
		return true
	})
	return found, found != ""
}

func findOfferPrice(node interface{}) (string, bool) {
	switch n := node.(type) {
	case []interface{}:
		for _, child := range n {
			if v, ok := findOfferPrice(child); ok {
				return v, true
			}
		}
	case map[string]interface{}:
		if graph, ok := n["@graph"]; ok {
			if v, ok := findOfferPrice(graph); ok {
				return v, true
			}
		}
		if isProduct(n["@type"]) {
			if v, ok := offerPrice(n["offers"]); ok {
				return v, true
			}
		}
	}
	return "", false
}

func isProduct(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []interface{}:
		for _, x := range v {
			if s, ok := x.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func offerPrice(offers interface{}) (string, bool) {
	switch o := offers.(type) {
	case []interface{}:
		for _, offer := range o {
			if v, ok := offerPrice(offer); ok {
				return v, true
			}
		}
	case map[string]interface{}:
		for _, key := range []string{"price", "lowPrice"} {
			switch p := o[key].(type) {
			case string:
				if p != "" {
					return p, true
				}
			case float64:
				return strconv.FormatFloat(p, 'f', -1, 64), true
			}
		}
	}
	return "", false
}

var numberPattern = regexp.MustCompile(`\d[\d.,\s]*`)

// ParsePrice turns a human-formatted amount into a float. It accepts
// "$1,299.99", "1.299,99 €", "49", and "USD 12.50".
func ParsePrice(raw string) (float64, bool) {
	m := numberPattern.FindString(raw)
	if m == "" {
		return 0, false
	}
	s := strings.TrimRight(strings.Join(strings.Fields(m), ""), ".,")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
