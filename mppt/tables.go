package mppt

// StateCount is the number of discrete duty-cycle states the hill-climb
// search walks over (0..StateCount-1).
const StateCount = 42

// FirstState is the state the controller enters when it starts charging
// from Off.
const FirstState = 12

// Off is the sentinel state value meaning "no PWM generated."
const Off int16 = -1

// INTERVAL holds the PWM repetition period for each state, in ticks of the
// 32768 Hz auxiliary clock: a geometric progression 32768*(4/5)^n down to 2.
// The hardware period register takes INTERVAL[s]-1 (see Controller.apply);
// the table stores the period itself rather than pre-subtracting, matching
// how the original firmware keeps the subtraction at the point of use.
var INTERVAL = [StateCount]uint16{
	32768, 26214, 20971, 16776, 13420, 10736, 8588, 6870, 5496, 4396,
	3516, 2812, 2249, 1799, 1439, 1151, 920, 736, 588, 470,
	376, 300, 240, 192, 153, 122, 97, 77, 61, 48,
	38, 30, 24, 19, 15, 12, 9, 7, 5, 4,
	3, 2,
}

// LOG_COUNT holds ~1024*log2(32768/INTERVAL[s]) for each state: the
// log-domain pulses-per-second term of the MPPT objective.
var LOG_COUNT = [StateCount]int16{
	0, 330, 659, 989, 1319, 1648, 1978, 2308, 2638, 2968,
	3298, 3628, 3958, 4288, 4617, 4947, 5278, 5608, 5940, 6270,
	6600, 6934, 7263, 7593, 7928, 8263, 8602, 8943, 9287, 9641,
	9986, 10335, 10665, 11010, 11359, 11689, 12114, 12485, 12982, 13312,
	13737, 14336,
}

// LOG_ENERGY holds ~1024*log2(((sensor>>1)^2-16)/1008) indexed by
// (sensor>>1)-32 for sensor in [64,255]: the log-domain per-pulse energy
// term of the MPPT objective. Index 0..95.
var LOG_ENERGY = [96]int16{
	0, 92, 182, 269, 353, 435, 515, 592, 668, 741, 813, 883, 952,
	1019, 1084, 1148, 1211, 1272, 1332, 1391, 1449, 1506, 1561, 1616, 1669, 1722,
	1773, 1824, 1874, 1923, 1971, 2019, 2065, 2111, 2157, 2201, 2245, 2289, 2331,
	2373, 2415, 2456, 2496, 2536, 2575, 2614, 2652, 2690, 2727, 2764, 2800, 2836,
	2871, 2906, 2941, 2975, 3009, 3043, 3076, 3108, 3141, 3173, 3204, 3236, 3267,
	3297, 3328, 3358, 3388, 3417, 3446, 3475, 3504, 3532, 3560, 3588, 3615, 3643,
	3670, 3696, 3723, 3749, 3775, 3801, 3827, 3852, 3877, 3902, 3927, 3951, 3976,
	4000, 4024, 4048, 4071, 4095,
}
