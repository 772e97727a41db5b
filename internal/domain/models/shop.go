package models

type ShopItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ShopCatalog is the fixed list of cosmetics the app offers.
var ShopCatalog = []ShopItem{
	{ID: "1", Name: "Hat", Price: 3},
	{ID: "2", Name: "Glasses", Price: 5},
	{ID: "3", Name: "T-shirt", Price: 2},
	{ID: "4", Name: "Trousers", Price: 4},
	{ID: "5", Name: "Shorts", Price: 6},
	{ID: "6", Name: "Shoes", Price: 3},
}
