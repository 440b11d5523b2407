package model

// CareLevel is the GIR dependency group of a resident, from 1 (total
// dependency) to 6 (autonomous).
type CareLevel int

const (
	MinCareLevel CareLevel = 1
	MaxCareLevel CareLevel = 6
)

// Valid reports whether l is within the GIR scale.
func (l CareLevel) Valid() bool {
	return l >= MinCareLevel && l <= MaxCareLevel
}

// CareLevelDescription documents one GIR group.
type CareLevelDescription struct {
	Level         CareLevel `json:"level"`
	Description   string    `json:"description"`
	AutonomyLevel string    `json:"autonomyLevel"`
}

var careLevelDescriptions = [...]CareLevelDescription{
	{1, "Personne confinée au lit ou au fauteuil, dont les fonctions mentales sont gravement altérées", "Dépendance totale"},
	{2, "Personne confinée au lit ou au fauteuil, dont les fonctions mentales ne sont pas totalement altérées", "Dépendance majeure"},
	{3, "Personne ayant conservé son autonomie mentale, partiellement son autonomie locomotrice", "Dépendance partielle"},
	{4, "Personne ayant besoin d'aide pour le lever, le coucher, la toilette", "Dépendance moyenne"},
	{5, "Personne ayant besoin d'une aide ponctuelle pour la toilette, la préparation des repas", "Dépendance légère"},
	{6, "Personne encore autonome pour les actes essentiels de la vie courante", "Autonomie"},
}

// Describe returns the description of l. ok is false for levels outside the scale.
func (l CareLevel) Describe() (d CareLevelDescription, ok bool) {
	if !l.Valid() {
		return CareLevelDescription{}, false
	}
	return careLevelDescriptions[l-1], true
}

// CareLevelDescriptions returns the descriptions of every GIR group in order.
func CareLevelDescriptions() []CareLevelDescription {
	out := make([]CareLevelDescription, len(careLevelDescriptions))
	copy(out, careLevelDescriptions[:])
	return out
}
