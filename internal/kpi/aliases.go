package kpi

// roleAliases is the declarative alias vocabulary per role. Entries are
// already normalized (see Normalize); resolution tries the normalized
// role name first, then these aliases in order. The vocabulary covers
// the header spellings seen across KPI sheet generations, including the
// Portuguese ones used by the timing crews.
var roleAliases = map[Role][]string{
	RoleCar: {
		"caralias", "car alias", "car", "car id", "car number",
		"carro", "chassis", "vehicle",
	},
	RoleSessionDate: {
		"sessiondate", "session date", "date", "data",
		"session day", "event date",
	},
	RoleSessionName: {
		"sessionname", "session name", "session", "sessao",
		"session id",
	},
	RoleLap: {
		"lap", "lap number", "lap no", "lapno", "volta",
	},
	RoleRun: {
		"run", "run number", "run no", "runno", "outing", "stint",
	},
	RoleTrack: {
		"trackname", "track name", "track", "circuit", "circuito",
		"etapa", "pista", "venue",
	},
	RoleDriver: {
		"drivername", "driver name", "driver", "pilot", "piloto",
	},
}

// auxiliarySuffixes is the fixed vocabulary of trailing tokens stripped
// when building base lookup keys, so "poil min" and "poil info" both
// reduce to a "poil" base while the full forms stay distinguishable.
var auxiliarySuffixes = map[string]bool{
	"info":   true,
	"min":    true,
	"max":    true,
	"avg":    true,
	"mean":   true,
	"median": true,
	"std":    true,
	"ref":    true,
	"target": true,
	"change": true,
}

// candidates returns the ordered match candidates for a role: the
// normalized role name followed by its alias list.
func candidates(r Role) []string {
	out := make([]string, 0, len(roleAliases[r])+1)
	out = append(out, Normalize(string(r)))
	out = append(out, roleAliases[r]...)
	return out
}
