package web

import "strings"

// Варианты оформления кнопки
const (
	VariantPrimary     = "primary"
	VariantSecondary   = "secondary"
	VariantDestructive = "destructive"
	VariantGhost       = "ghost"
	VariantMuted       = "muted"
	VariantOutline     = "outline"
	VariantTeritary    = "teritary"
)

// Размеры кнопки
const (
	SizeDefault = "default"
	SizeSm      = "sm"
	SizeXs      = "xs"
	SizeLg      = "lg"
	SizeIcon    = "icon"
)

var buttonVariants = map[string]string{
	VariantPrimary:     "btn-primary",
	VariantSecondary:   "btn-secondary",
	VariantDestructive: "btn-destructive",
	VariantGhost:       "btn-ghost",
	VariantMuted:       "btn-muted",
	VariantOutline:     "btn-outline",
	VariantTeritary:    "btn-teritary",
}

var buttonSizes = map[string]string{
	SizeDefault: "btn-md",
	SizeSm:      "btn-sm",
	SizeXs:      "btn-xs",
	SizeLg:      "btn-lg",
	SizeIcon:    "btn-icon",
}

// ButtonClass возвращает CSS-классы кнопки. Неизвестные вариант и размер
// заменяются значениями по умолчанию.
func ButtonClass(variant, size string) string {
	v, ok := buttonVariants[variant]
	if !ok {
		v = buttonVariants[VariantPrimary]
	}
	s, ok := buttonSizes[size]
	if !ok {
		s = buttonSizes[SizeDefault]
	}
	return strings.Join([]string{"btn", v, s}, " ")
}

func InputClass() string {
	return "input"
}

type buttonDemo struct {
	Label   string
	Variant string
	Size    string
}

// showcase - кнопки для главной страницы, по одной на каждый вариант
var showcase = []buttonDemo{
	{Label: "Primary", Variant: VariantPrimary, Size: SizeXs},
	{Label: "Secondary", Variant: VariantSecondary},
	{Label: "Destructive", Variant: VariantDestructive},
	{Label: "Ghost", Variant: VariantGhost},
	{Label: "Muted", Variant: VariantMuted},
	{Label: "Outline", Variant: VariantOutline},
	{Label: "Teritary", Variant: VariantTeritary},
}
