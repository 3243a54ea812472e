/*
Package claims models the decoded payload of a JSON Web Token.

A claim can hold any JSON shape, so each one is stored as a Value, a tagged
union over string, int64, float64, bool, list, map and null. Values are built
from decoded JSON with Wrap and read back with the As* probes, which report
whether the value has the requested shape instead of panicking.

	set, err := claims.ParseSet(payload)
	if err != nil {
		return err
	}
	if v, ok := set.Get(claims.Subject); ok {
		sub, _ := v.AsString()
		fmt.Println(sub)
	}

Normalize converts a Value into a plain Go value by probing bool, list,
numeric, map and string in that fixed order.
*/
package claims
