package site

// Labels holds the user-facing strings of one site language.
type Labels struct {
	Brand             string
	IndexTitle        string
	IndexHeading      string
	SearchPlaceholder string
	Product           string
	Grade             string
	Score             string
	Products          string
	BuiltAt           string
	Emissions         string
	Distance          string
	Biodiversity      string
	Defaulted         string
	QRHeading         string
	QRHint            string
	Back              string
	Footer            string
}

var languages = map[string]Labels{ //nolint:gochecknoglobals // static label tables
	"fr": {
		Brand:             "Éco-score",
		IndexTitle:        "Éco-score · Catalogue",
		IndexHeading:      "Catalogue Éco-score",
		SearchPlaceholder: "Rechercher un produit",
		Product:           "Produit",
		Grade:             "Note",
		Score:             "Score",
		Products:          "Produits",
		BuiltAt:           "généré le",
		Emissions:         "Émissions (par unité)",
		Distance:          "Distance estimée",
		Biodiversity:      "Risque biodiversité",
		Defaulted:         "valeur par défaut",
		QRHeading:         "QR code",
		QRHint:            "Scannez pour ouvrir cette fiche :",
		Back:              "Retour au catalogue",
		Footer:            "Éco-score",
	},
	"en": {
		Brand:             "Eco-score",
		IndexTitle:        "Eco-score · Catalog",
		IndexHeading:      "Eco-score catalog",
		SearchPlaceholder: "Search products",
		Product:           "Product",
		Grade:             "Grade",
		Score:             "Score",
		Products:          "Products",
		BuiltAt:           "built",
		Emissions:         "Emissions (per unit)",
		Distance:          "Estimated distance",
		Biodiversity:      "Biodiversity risk",
		Defaulted:         "default value",
		QRHeading:         "QR code",
		QRHint:            "Scan to open this page:",
		Back:              "Back to catalog",
		Footer:            "Eco-score",
	},
}

// Languages lists the supported site languages.
func Languages() []string {
	return []string{"fr", "en"}
}

// LabelsFor returns the labels of lang and whether lang is supported.
func LabelsFor(lang string) (Labels, bool) {
	l, ok := languages[lang]
	return l, ok
}
