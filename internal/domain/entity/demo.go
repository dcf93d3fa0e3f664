package entity

// DemoContext returns the "Card Declined While Traveling" scenario used to
// seed the console before real data is loaded.
func DemoContext() *Context {
	return &Context{
		Customer: CustomerProfile{
			Name:               "Priya Sharma",
			AccountType:        "Premium Checking",
			AccountOpened:      "March 12, 2018",
			CreditScore:        760,
			AverageBalance:     "$8,500",
			CardType:           "World Traveler Visa",
			CardLastFour:       "7842",
			EligibleForUpgrade: true,
			ContactPreference:  "Mobile",
			Phone:              "+1 (555) 123-4567",
			Email:              "priya.sharma@email.com",
		},
		Notice: &TravelNotice{
			SubmittedDate:     "May 2, 2023",
			TravelStart:       "May 5, 2023",
			TravelEnd:         "May 15, 2023",
			Countries:         []string{"France", "Italy", "Spain"},
			Status:            "Submitted but not activated due to system error",
			SubmissionChannel: "Mobile App",
		},
		Transactions: []Transaction{
			{
				Date:     "April 4, 2025",
				Merchant: "Starbucks",
				Location: "New York, USA",
				Amount:   "$5.75",
				Status:   StatusApproved,
				CardUsed: "World Traveler Visa ending in 7842",
			},
			{
				Date:     "April 2, 2025",
				Merchant: "Tokyo Central Market",
				Location: "Tokyo, Japan",
				Amount:   "¥3,200",
				Status:   StatusDeclined,
				Reason:   "Insufficient funds",
				CardUsed: "World Traveler Visa ending in 7842",
			},
			{
				Date:     "March 30, 2025",
				Merchant: "Uber",
				Location: "Berlin, Germany",
				Amount:   "€22.40",
				Status:   StatusApproved,
				CardUsed: "World Traveler Visa ending in 7842",
			},
			{
				Date:     "March 25, 2025",
				Merchant: "La Casa Tapas",
				Location: "Barcelona, Spain",
				Amount:   "€65.00",
				Status:   StatusDeclined,
				Reason:   "Card reported lost",
				CardUsed: "World Traveler Visa ending in 7842",
			},
			{
				Date:     "March 22, 2025",
				Merchant: "Amazon Marketplace",
				Location: "Online",
				Amount:   "$120.99",
				Status:   StatusApproved,
				CardUsed: "World Traveler Visa ending in 7842",
			},
		},
	}
}
