package units

import "github.com/nmaxcom/smartpad-go/internal/dimension"

// registerBuiltins populates r with the built-in unit table spanning the
// families named in spec.md §4.4. Grounded on imhotep-nb-units' unit table
// shape (symbol/factor/dimension) with factors adapted to the seven-base
// dimension vectors in internal/dimension.
func registerBuiltins(r *Registry) {
	// Length (base: meter)
	r.Register(Unit{Symbol: "m", Name: "meter", Dim: dimension.Length, ToBase: 1, Category: "length", Aliases: []string{"meter", "metre"}})
	r.Register(Unit{Symbol: "ft", Name: "foot", Dim: dimension.Length, ToBase: 0.3048, Category: "length", Aliases: []string{"foot", "feet"}})
	r.Register(Unit{Symbol: "in", Name: "inch", Dim: dimension.Length, ToBase: 0.0254, Category: "length", Aliases: []string{"inch"}})
	r.Register(Unit{Symbol: "yd", Name: "yard", Dim: dimension.Length, ToBase: 0.9144, Category: "length", Aliases: []string{"yard"}})
	r.Register(Unit{Symbol: "mi", Name: "mile", Dim: dimension.Length, ToBase: 1609.344, Category: "length", Aliases: []string{"mile"}})
	r.Register(Unit{Symbol: "nmi", Name: "nautical mile", Dim: dimension.Length, ToBase: 1852, Category: "length", Aliases: []string{"nauticalmile"}})

	// Mass (base: kilogram; "g" is the prefixable symbol, kg handled via prefix "k"+"g")
	r.Register(Unit{Symbol: "g", Name: "gram", Dim: dimension.Mass, ToBase: 0.001, Category: "mass", Aliases: []string{"gram"}})
	r.Register(Unit{Symbol: "lb", Name: "pound", Dim: dimension.Mass, ToBase: 0.45359237, Category: "mass", Aliases: []string{"pound"}})
	r.Register(Unit{Symbol: "oz", Name: "ounce", Dim: dimension.Mass, ToBase: 0.028349523125, Category: "mass", Aliases: []string{"ounce"}})
	r.Register(Unit{Symbol: "t", Name: "tonne", Dim: dimension.Mass, ToBase: 1000, Category: "mass", Aliases: []string{"tonne", "metricton"}})

	// Time (base: second)
	r.Register(Unit{Symbol: "s", Name: "second", Dim: dimension.Time, ToBase: 1, Category: "time", Aliases: []string{"sec", "second", "seconds"}})
	r.Register(Unit{Symbol: "min", Name: "minute", Dim: dimension.Time, ToBase: 60, Category: "time", Aliases: []string{"minute", "minutes"}})
	r.Register(Unit{Symbol: "h", Name: "hour", Dim: dimension.Time, ToBase: 3600, Category: "time", Aliases: []string{"hr", "hour", "hours"}})
	r.Register(Unit{Symbol: "day", Name: "day", Dim: dimension.Time, ToBase: 86400, Category: "time", Aliases: []string{"days"}})
	r.Register(Unit{Symbol: "week", Name: "week", Dim: dimension.Time, ToBase: 604800, Category: "time", Aliases: []string{"weeks"}})
	r.Register(Unit{Symbol: "month", Name: "month", Dim: dimension.Time, ToBase: 30.4375 * 86400, Category: "time", Aliases: []string{"months"}})
	r.Register(Unit{Symbol: "year", Name: "year", Dim: dimension.Time, ToBase: 365 * 86400, Category: "time", Aliases: []string{"years", "yr"}})

	// Current
	r.Register(Unit{Symbol: "A", Name: "ampere", Dim: dimension.Current, ToBase: 1, Category: "current", Aliases: []string{"amp", "ampere"}})

	// Temperature (base: Kelvin). °C and °F are affine.
	r.Register(Unit{Symbol: "K", Name: "kelvin", Dim: dimension.Temperature, ToBase: 1, Category: "temperature", Aliases: []string{"kelvin"}})
	r.Register(Unit{Symbol: "C", Name: "celsius", Dim: dimension.Temperature, ToBase: 1, Offset: 273.15, Category: "temperature", Aliases: []string{"celsius", "°c"}})
	r.Register(Unit{Symbol: "F", Name: "fahrenheit", Dim: dimension.Temperature, ToBase: 5.0 / 9.0, Offset: 459.67 * 5.0 / 9.0, Category: "temperature", Aliases: []string{"fahrenheit", "°f"}})

	// Amount of substance
	r.Register(Unit{Symbol: "mol", Name: "mole", Dim: dimension.Amount, ToBase: 1, Category: "amount", Aliases: []string{"mole"}})

	// Luminous intensity
	r.Register(Unit{Symbol: "cd", Name: "candela", Dim: dimension.Luminosity, ToBase: 1, Category: "luminosity", Aliases: []string{"candela"}})

	// Area / Volume named units
	r.Register(Unit{Symbol: "ha", Name: "hectare", Dim: dimension.Area, ToBase: 10000, Category: "area", Aliases: []string{"hectare"}})
	r.Register(Unit{Symbol: "acre", Name: "acre", Dim: dimension.Area, ToBase: 4046.8564224, Category: "area", Aliases: []string{"acres"}})
	r.Register(Unit{Symbol: "L", Name: "liter", Dim: dimension.Volume, ToBase: 0.001, Category: "volume", Aliases: []string{"l", "liter", "litre"}})
	r.Register(Unit{Symbol: "gal", Name: "gallon", Dim: dimension.Volume, ToBase: 0.00378541, Category: "volume", Aliases: []string{"gallon"}})

	// Velocity
	r.Register(Unit{Symbol: "kn", Name: "knot", Dim: dimension.Velocity, ToBase: 1852.0 / 3600.0, Category: "velocity", Aliases: []string{"knot", "knots"}})

	// Force / Pressure / Energy / Power named units
	r.Register(Unit{Symbol: "N", Name: "newton", Dim: dimension.Force, ToBase: 1, Category: "force", Aliases: []string{"newton"}})
	r.Register(Unit{Symbol: "Pa", Name: "pascal", Dim: dimension.Pressure, ToBase: 1, Category: "pressure", Aliases: []string{"pascal"}})
	r.Register(Unit{Symbol: "bar", Name: "bar", Dim: dimension.Pressure, ToBase: 100000, Category: "pressure", Aliases: []string{"bar"}})
	r.Register(Unit{Symbol: "psi", Name: "pound-force per square inch", Dim: dimension.Pressure, ToBase: 6894.757293168, Category: "pressure", Aliases: []string{"psi"}})
	r.Register(Unit{Symbol: "J", Name: "joule", Dim: dimension.Energy, ToBase: 1, Category: "energy", Aliases: []string{"joule"}})
	r.Register(Unit{Symbol: "cal", Name: "calorie", Dim: dimension.Energy, ToBase: 4.184, Category: "energy", Aliases: []string{"calorie", "calories"}})
	r.Register(Unit{Symbol: "Wh", Name: "watt-hour", Dim: dimension.Energy, ToBase: 3600, Category: "energy", Aliases: []string{"watthour"}})
	r.Register(Unit{Symbol: "W", Name: "watt", Dim: dimension.Power, ToBase: 1, Category: "power", Aliases: []string{"watt"}})
	r.Register(Unit{Symbol: "hp", Name: "horsepower", Dim: dimension.Power, ToBase: 745.699872, Category: "power", Aliases: []string{"horsepower"}})

	// Frequency
	r.Register(Unit{Symbol: "Hz", Name: "hertz", Dim: dimension.Frequency, ToBase: 1, Category: "frequency", Aliases: []string{"hertz"}})

	// Information (bits/bytes); Resolve tries both the SI and the binary prefix tables, so kB and KiB both resolve.
	r.Register(Unit{Symbol: "b", Name: "bit", Dim: dimension.Dimensionless, ToBase: 0.125, Category: "information", Aliases: []string{"bit", "bits"}})
	r.Register(Unit{Symbol: "B", Name: "byte", Dim: dimension.Dimensionless, ToBase: 1, Category: "information", Aliases: []string{"byte", "bytes"}})
}

// NamedProductUnits maps a composite-unit signature (sorted "symbol^power"
// pairs) to a preferred display symbol, used by the quantity package to
// simplify products like Pa*m^3 -> J. Keyed by a canonical string built from
// Composite.String() over base SI units (never user aliases).
var NamedProductUnits = map[string]string{
	"N":        "N",
	"N*m":      "J",
	"Pa*m^3":   "J",
	"J/s":      "W",
	"kg*m/s^2": "N",
	"1/s":      "Hz",
}
