package timezone

import (
	"fmt"
	"sort"
	"time"
)

// Normalizer переводит время между каноническим UTC и локальным временем
// врача для фиксированного набора поддерживаемых зон. Неподдерживаемая зона
// не является ошибкой: она заменяется зоной по умолчанию, а замена
// сообщается вызывающему через второй результат.
type Normalizer struct {
	zones       map[string]*time.Location
	defaultName string
	defaultLoc  *time.Location
}

func NewNormalizer(supported []string, defaultZone string) (*Normalizer, error) {
	zones := make(map[string]*time.Location, len(supported))
	for _, name := range supported {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("неизвестная временная зона %q: %w", name, err)
		}
		zones[name] = loc
	}

	defaultLoc, ok := zones[defaultZone]
	if !ok {
		return nil, fmt.Errorf("зона по умолчанию %q отсутствует в списке поддерживаемых", defaultZone)
	}

	return &Normalizer{
		zones:       zones,
		defaultName: defaultZone,
		defaultLoc:  defaultLoc,
	}, nil
}

// Resolve возвращает локацию для зоны и признак того, что зона была
// заменена зоной по умолчанию.
func (n *Normalizer) Resolve(zone string) (*time.Location, bool) {
	if loc, ok := n.zones[zone]; ok {
		return loc, false
	}
	return n.defaultLoc, true
}

// ToUTC интерпретирует настенное время (поля года, месяца, дня, часов и
// минут аргумента) в указанной зоне и возвращает канонический момент в UTC.
func (n *Normalizer) ToUTC(wall time.Time, zone string) (time.Time, bool) {
	loc, substituted := n.Resolve(zone)

	local := time.Date(
		wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(),
		loc,
	)

	return local.UTC(), substituted
}

// ToZone переводит канонический момент UTC в локальное время зоны.
func (n *Normalizer) ToZone(utc time.Time, zone string) (time.Time, bool) {
	loc, substituted := n.Resolve(zone)
	return utc.In(loc), substituted
}

func (n *Normalizer) Default() string {
	return n.defaultName
}

func (n *Normalizer) Supported() []string {
	names := make([]string, 0, len(n.zones))
	for name := range n.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
