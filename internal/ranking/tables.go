package ranking

import "github.com/shopspring/decimal"

// Rank tables, ordered descending by Min. The rank 0 tier is the
// explicit floor; CalculateRank also falls back to "Pemula" if a table
// omits it.

// WeightTable ranks lifetime collected weight in kilograms.
var WeightTable = []Threshold{
	{Rank: 8, Name: "Legenda Hijau", Min: decimal.NewFromInt(1000)},
	{Rank: 7, Name: "Penjaga Bumi", Min: decimal.NewFromInt(500)},
	{Rank: 6, Name: "Master Daur Ulang", Min: decimal.NewFromInt(250)},
	{Rank: 5, Name: "Pahlawan Hijau", Min: decimal.NewFromInt(100)},
	{Rank: 4, Name: "Ranger Lingkungan", Min: decimal.NewFromInt(50)},
	{Rank: 3, Name: "Pejuang Sampah", Min: decimal.NewFromInt(25)},
	{Rank: 2, Name: "Sahabat Alam", Min: decimal.NewFromInt(10)},
	{Rank: 1, Name: "Tunas Hijau", Min: decimal.NewFromInt(5)},
	{Rank: 0, Name: "Pemula", Min: decimal.Zero},
}

// RoutineTable ranks the number of deposits in the trailing 30 days.
var RoutineTable = []Threshold{
	{Rank: 8, Name: "Legenda Rutin", Min: decimal.NewFromInt(30)},
	{Rank: 7, Name: "Juara Konsisten", Min: decimal.NewFromInt(24)},
	{Rank: 6, Name: "Rajin Sekali", Min: decimal.NewFromInt(18)},
	{Rank: 5, Name: "Penyetor Andal", Min: decimal.NewFromInt(12)},
	{Rank: 4, Name: "Penyetor Aktif", Min: decimal.NewFromInt(8)},
	{Rank: 3, Name: "Mulai Rajin", Min: decimal.NewFromInt(5)},
	{Rank: 2, Name: "Penyetor Santai", Min: decimal.NewFromInt(3)},
	{Rank: 1, Name: "Baru Mulai", Min: decimal.NewFromInt(1)},
	{Rank: 0, Name: "Pemula", Min: decimal.Zero},
}

// BalanceTable ranks the current balance in rupiah.
var BalanceTable = []Threshold{
	{Rank: 8, Name: "Sultan Sampah", Min: decimal.NewFromInt(1000000)},
	{Rank: 7, Name: "Juragan Hijau", Min: decimal.NewFromInt(500000)},
	{Rank: 6, Name: "Saudagar Daur Ulang", Min: decimal.NewFromInt(250000)},
	{Rank: 5, Name: "Penabung Ulung", Min: decimal.NewFromInt(100000)},
	{Rank: 4, Name: "Penabung Tekun", Min: decimal.NewFromInt(50000)},
	{Rank: 3, Name: "Penabung Rajin", Min: decimal.NewFromInt(25000)},
	{Rank: 2, Name: "Penabung Muda", Min: decimal.NewFromInt(10000)},
	{Rank: 1, Name: "Celengan Pertama", Min: decimal.NewFromInt(5000)},
	{Rank: 0, Name: "Pemula", Min: decimal.Zero},
}
