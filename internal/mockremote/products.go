package mockremote

import "fake-store/go-client/internal/remote"

func SeedProducts() []remote.Product {
	return []remote.Product{
		{ID: "1", Title: "Fjallraven Foldsack No. 1 Backpack", Price: 109.95, Category: "men's clothing", Description: "Fits 15 inch laptops."},
		{ID: "2", Title: "Mens Casual Premium Slim Fit T-Shirts", Price: 22.3, Category: "men's clothing", Description: "Slim-fitting style."},
		{ID: "5", Title: "John Hardy Women's Legends Naga Bracelet", Price: 695, Category: "jewelery", Description: "Silver dragon station chain bracelet."},
		{ID: "9", Title: "WD 2TB Elements Portable External Hard Drive", Price: 64, Category: "electronics", Description: "USB 3.0 and USB 2.0 compatibility."},
		{ID: "10", Title: "SanDisk SSD PLUS 1TB Internal SSD", Price: 109, Category: "electronics", Description: "Easy upgrade for faster boot up."},
		{ID: "18", Title: "MBJ Women's Solid Short Sleeve Boat Neck V", Price: 9.85, Category: "women's clothing", Description: "Lightweight fabric with great stretch."},
	}
}
