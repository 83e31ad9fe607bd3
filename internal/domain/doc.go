// Package domain models the raw output of the ncas-aws-10 automatic weather
// station (a Vaisala WXT536) and the basic range QC applied before archiving.
//
// # Data Source
//
// The station logger writes one comma-separated line per sample:
//
//	2022-03-07T12:00:00.125,0R0,Dn=236D,Dm=240D,Dx=244D,Sn=2.1M,Sm=2.6M,Sx=3.0M,Ta=21.3C,...
//
// Token 0 is the UTC timestamp, with or without fractional seconds. Token 1 is
// the WXT "0R0" composite-data prefix and carries no value. Every other token is
// CODE=VALUE followed by a single unit character.
//
// # Field Codes
//
//	Dn Dm Dx   wind direction min/mean/max      D = degrees
//	Sn Sm Sx   wind speed min/mean/max          M = m/s
//	Ta Tp      air / internal temperature       C = Celsius (F = Fahrenheit)
//	Ua         relative humidity                P = percent
//	Pa         air pressure                     H = hPa
//	Rc Rd Ri   rain amount/duration/intensity   M = mm, s = seconds, M = mm/h
//	Hc Hd Hi   hail amount/duration/intensity   M = hits/cm2, s, M = hits/cm2/h
//	Rp Hp      rain/hail peak intensity         M
//	Th Vh Vs Vr heating temp, heating/supply/reference voltage
//	Id         station identifier (kept verbatim, unit included)
//
// A unit that differs from the table is reported as a diagnostic and the value
// is kept. Vh is never checked: its suffix encodes the heater state.
//
// # Temperature
//
// Ta is always stored in Kelvin. Celsius adds 273.15. Fahrenheit uses the
// station software's formula (F + 459.67) * 5/9, which converts to Rankine and
// scales to Kelvin in one step.
//
// # Range QC
//
// Flags follow the AMOF convention, where 0 is reserved and 1 is good data:
//
//	generic variables     2 = outside operating range
//	wind_speed            2 = exactly zero (calm), 3 = outside operating range
//	wind_from_direction   2 = paired wind_speed is zero, 3 = outside operating range
//
// Ranges are inclusive and come from the manufacturer specification. NaN
// values (fields missing from a line) are never flagged out of range.
package domain
