package profile

import (
	"strings"

	"github.com/raterudder/retrofit/pkg/types"
)

// citySunHours holds daily equivalent full-load hours for major cities.
var citySunHours = map[string]float64{
	"beijing": 3.6, "tianjin": 3.5, "shijiazhuang": 3.4, "taiyuan": 4.1, "hohhot": 4.8, "baotou": 5.0,
	"shenyang": 3.8, "dalian": 3.9, "changchun": 4.0, "harbin": 3.7,
	"shanghai": 3.1, "nanjing": 3.2, "hangzhou": 3.0, "hefei": 3.1, "fuzhou": 3.2, "nanchang": 3.0,
	"jinan": 3.5, "qingdao": 3.7, "suzhou": 3.1, "wuxi": 3.1, "ningbo": 3.1, "wenzhou": 3.0,
	"zhengzhou": 3.3, "wuhan": 3.1, "changsha": 2.8,
	"guangzhou": 3.1, "shenzhen": 3.2, "nanning": 3.1, "haikou": 3.8, "sanya": 4.2, "foshan": 3.1, "dongguan": 3.2,
	"chongqing": 2.2, "chengdu": 2.5, "guiyang": 2.4, "kunming": 4.5, "lhasa": 5.5, "panzhihua": 3.8,
	"lijiang": 4.2, "shigatse": 5.0, "ngari": 5.1,
	"xian": 3.3, "lanzhou": 4.3, "xining": 4.7, "yinchuan": 4.9, "urumqi": 4.1, "hami": 5.2,
	"jiuquan": 4.5, "jiayuguan": 4.6, "turpan": 4.4,
}

// provinceSunHours is the provincial fallback when the city is unknown.
var provinceSunHours = map[string]float64{
	"beijing": 3.6, "tianjin": 3.5, "shanghai": 3.1, "chongqing": 2.2,
	"hebei": 3.6, "shanxi": 4.1, "inner mongolia": 4.8, "liaoning": 3.8, "jilin": 4.0, "heilongjiang": 3.7,
	"jiangsu": 3.1, "zhejiang": 3.0, "anhui": 3.1, "fujian": 3.2, "jiangxi": 3.0, "shandong": 3.5,
	"henan": 3.3, "hubei": 3.1, "hunan": 2.8, "guangdong": 3.1, "guangxi": 3.1, "hainan": 3.9,
	"sichuan": 2.5, "guizhou": 2.4, "yunnan": 4.2, "tibet": 5.5,
	"shaanxi": 3.3, "gansu": 4.3, "qinghai": 4.7, "ningxia": 4.9, "xinjiang": 4.5,
}

func normalizeRegionName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " city")
	s = strings.TrimSuffix(s, " province")
	return strings.ReplaceAll(s, "'", "")
}

// SunHours returns the daily equivalent sun hours for a location, preferring
// the city, then the province, then the national average.
func SunHours(province, city string) float64 {
	if v, ok := citySunHours[normalizeRegionName(city)]; ok {
		return v
	}
	if v, ok := provinceSunHours[normalizeRegionName(province)]; ok {
		return v
	}
	return types.DefaultSolarSunHours
}
