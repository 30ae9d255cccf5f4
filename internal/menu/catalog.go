// Package menu holds the restaurant catalog and its FCFA unit prices.
package menu

import (
	"strings"

	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
)

type Category string

const (
	CategoryPlats    Category = "plats"
	CategoryDesserts Category = "desserts"
	CategoryBoissons Category = "boissons"
)

// Item is one orderable dish or drink. Price is in FCFA.
type Item struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       int64    `json:"price"`
	Description string   `json:"description,omitempty"`
}

var items = []Item{
	{Name: "Pâte Rouge", Category: CategoryPlats, Price: 2500, Description: "Pâte de maïs rouge, sauce tomate pimentée et poisson frit"},
	{Name: "Abobo(Plat de Haricots)", Category: CategoryPlats, Price: 1500, Description: "Haricots mijotés à l'huile rouge, servis avec gari"},
	{Name: "Télibo", Category: CategoryPlats, Price: 3500, Description: "Pâte de cossettes d'igname et sauce légumes"},
	{Name: "Brochettes de Mouton", Category: CategoryPlats, Price: 3200, Description: "Brochettes grillées au feu de bois, épices du marché"},
	{Name: "Riz aux Haricots", Category: CategoryPlats, Price: 2000, Description: "Riz et haricots, sauce tomate et œuf dur"},
	{Name: "Plat Végétarien Béninois", Category: CategoryPlats, Price: 1800, Description: "Légumes de saison, igname pilée et sauce arachide"},
	{Name: "Crème à la fraise", Category: CategoryDesserts, Price: 2000},
	{Name: "Spécialité Martine", Category: CategoryDesserts, Price: 4000},
	{Name: "Beignets Râpés Vegan", Category: CategoryDesserts, Price: 1200},
	{Name: "Bissap Traditionnel", Category: CategoryBoissons, Price: 500},
	{Name: "Jus de Baobab", Category: CategoryBoissons, Price: 800},
	{Name: "Tchoukoutou", Category: CategoryBoissons, Price: 1000},
}

// Catalog prices orders. The catalog is the source of truth for unit prices.
type Catalog struct {
	items  []Item
	byName map[string]Item
}

// Default returns the house menu.
func Default() *Catalog {
	return New(items)
}

func New(list []Item) *Catalog {
	c := &Catalog{
		items:  append([]Item(nil), list...),
		byName: make(map[string]Item, len(list)),
	}
	for _, it := range list {
		c.byName[normalize(it.Name)] = it
	}
	return c
}

// Items returns the full menu in display order.
func (c *Catalog) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Lookup finds an item by name, ignoring case and surrounding space.
func (c *Catalog) Lookup(name string) (Item, bool) {
	it, ok := c.byName[normalize(name)]
	return it, ok
}

// Price returns the unit price for name or a validation error when the item
// is not on the menu.
func (c *Catalog) Price(name string) (int64, error) {
	it, ok := c.Lookup(name)
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "item is not on the menu").
			WithDetails(map[string]any{"item": name})
	}
	return it.Price, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
