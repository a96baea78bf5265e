package domain

import "strconv"

// UserProfile mirrors the user record returned by the auth endpoints.
// Height, weight and age travel as strings on the wire; the numeric
// accessors parse them leniently for the upload form.
type UserProfile struct {
	UserID     string `json:"userid"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Age        string `json:"age,omitempty"`
	DOB        string `json:"dob,omitempty"`
	Height     string `json:"height,omitempty"`
	Weight     string `json:"weight,omitempty"`
	BMI        string `json:"bmi,omitempty"`
	PhoneNo    string `json:"phoneno,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
	Gender     string `json:"gender,omitempty"`
}

// AgeYears returns the age as an integer, or 0 when unset or unparseable.
func (p UserProfile) AgeYears() int { return atoiOrZero(p.Age) }

// HeightCm returns the height in centimeters, or 0 when unset.
func (p UserProfile) HeightCm() int { return atoiOrZero(p.Height) }

// WeightKg returns the weight in kilograms, or 0 when unset.
func (p UserProfile) WeightKg() int { return atoiOrZero(p.Weight) }

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
