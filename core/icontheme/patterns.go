package icontheme

import "regexp"

// Accepted token sets for font declarations. They mirror the CSS values a
// renderer can use in an @font-face rule.
var (
	fontIDPattern     = regexp.MustCompile(`^([\w-]+)$`)
	fontWeightPattern = regexp.MustCompile(`^(normal|bold|lighter|bolder|(\d{1,3}))$`)
	fontStylePattern  = regexp.MustCompile(`^(normal|italic|(oblique[ \w\s-]+))$`)
	fontFormatPattern = regexp.MustCompile(`^(woff|woff2|truetype|opentype|embedded-opentype|svg)$`)
)
