package andino

import "andino-loader/core/importer"

// reservaRequiredColumns must be present in the reservation source after
// header renaming; the run aborts without them.
var reservaRequiredColumns = []string{"pnr", "pasajero_id", "vuelo_id"}

// MasterLoads returns the master tables in dependency order. Masters are
// insert-only: an id already present at the destination is never updated.
func MasterLoads() []importer.LoadSpec {
	return []importer.LoadSpec{
		{Table: "terminal", Mode: importer.ModeInsertOnly},
		{Table: "aerolinea", Mode: importer.ModeInsertOnly},
		{Table: "aeronave", Mode: importer.ModeInsertOnly},
		{
			Table: "puerta",
			Mode:  importer.ModeInsertOnly,
			ForeignKeys: []importer.ForeignKey{
				{Column: "terminal_id", References: "terminal"},
			},
		},
		{
			Table: "vuelo",
			Mode:  importer.ModeInsertOnly,
			ForeignKeys: []importer.ForeignKey{
				{Column: "aerolinea_id", References: "aerolinea"},
				{Column: "aeronave_id", References: "aeronave"},
				// A stale gate assignment clears instead of blocking the
				// flight.
				{Column: "puerta_id", References: "puerta", Optional: true},
			},
		},
		{Table: "pasajero", Mode: importer.ModeInsertOnly},
	}
}

// ReservaMerge returns the staged-merge description for reservations,
// keyed on the booking locator and flight rather than the surrogate id.
func ReservaMerge() importer.MergeSpec {
	return importer.MergeSpec{
		Table:      "reserva",
		NaturalKey: []string{"pnr", "vuelo_id"},
		Columns: []string{
			"pnr", "pasajero_id", "vuelo_id",
			"asiento", "estado_reserva", "fecha_reserva",
		},
		UpdateColumns: []string{"asiento", "estado_reserva", "fecha_reserva"},
		ForeignKeys: []importer.ForeignKey{
			{Column: "vuelo_id", References: "vuelo"},
			{Column: "pasajero_id", References: "pasajero"},
		},
	}
}

// DependentLoads returns the tables that hang off reservations, in
// dependency order. These upsert by surrogate id; the change log is
// append-only.
func DependentLoads() []importer.LoadSpec {
	return []importer.LoadSpec{
		{
			Table: "pase_abordar",
			Mode:  importer.ModeUpsert,
			ForeignKeys: []importer.ForeignKey{
				{Column: "reserva_id", References: "reserva"},
			},
		},
		{
			Table: "equipaje",
			Mode:  importer.ModeUpsert,
			ForeignKeys: []importer.ForeignKey{
				{Column: "reserva_id", References: "reserva"},
				{Column: "vuelo_id", References: "vuelo"},
			},
		},
		{
			Table: "evento_embarque",
			Mode:  importer.ModeUpsert,
			ForeignKeys: []importer.ForeignKey{
				{Column: "pase_abordar_id", References: "pase_abordar"},
				{Column: "puerta_id", References: "puerta"},
				// The source system stamps events with the carrier's id in
				// usuario_id.
				{Column: "usuario_id", References: "aerolinea"},
			},
		},
		{Table: "log_cambios", Mode: importer.ModeInsertOnly},
	}
}
