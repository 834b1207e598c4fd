package constants

const (
	UpsertAircraft = `
	INSERT INTO aircraft (icao_number, tail_number, type_designator, model, country, snapshot_date)
	VALUES (:icao_number, :tail_number, :type_designator, :model, :country, :snapshot_date)
	ON CONFLICT (icao_number) DO UPDATE SET
		tail_number = EXCLUDED.tail_number,
		type_designator = EXCLUDED.type_designator,
		model = EXCLUDED.model,
		country = EXCLUDED.country,
		snapshot_date = EXCLUDED.snapshot_date
	`

	GetAircraftByIcao = `
	SELECT * FROM aircraft WHERE icao_number = $1
	`

	CountAircraft = `
	SELECT COUNT(*) FROM aircraft
	`
)
